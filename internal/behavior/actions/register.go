package actions

import "github.com/warforge/server/internal/behavior"

// RegisterDefaults 掛入四個內建葉動作。技能動作由 ability.Registry 另行掛入。
func RegisterDefaults(table *behavior.Actions) error {
	for _, a := range []behavior.Action{Move{}, Build{}, Mine{}, Defend{}} {
		if err := table.Register(a); err != nil {
			return err
		}
	}
	return nil
}
