package layers

import "github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/core"

func init() {
	registerReopen()
}

func registerReopen() {
	core.RegisterLayer(core.LayerDefinition{
		Layer:       core.LayerReopen,
		Label:       "Reopen",
		Description: "Reopened incidents and repeat contacts",
		Columns: []string{
			"incident_id",
			"issue_type",
			"disposition",
			"seller_id",
			"status",
			"month",
			"partner",
			"tier",
			"count_repeat",
			"esc/non_esc",
			"domain",
		},
	})
}
