package layers

import "github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/core"

func init() {
	registerSPF()
}

func registerSPF() {
	core.RegisterLayer(core.LayerDefinition{
		Layer:       core.LayerSPF,
		Label:       "SPF",
		Description: "Seller performance follow-up incidents",
		Columns: []string{
			"incident_id",
			"incident_thread_id",
			"category_id",
			"status",
			"status_type",
			"sellerid",
			"disposition_id",
			"month",
			"partner",
			"tier",
			"domain",
			"spf_related_issues",
		},
	})
}
