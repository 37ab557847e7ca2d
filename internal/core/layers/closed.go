package layers

import "github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/core"

func init() {
	registerClosed()
}

func registerClosed() {
	core.RegisterLayer(core.LayerDefinition{
		Layer:       core.LayerClosed,
		Label:       "Closed",
		Description: "Closed incidents with time spent per queue",
		Columns: []string{
			"incident_id",
			"seller_id",
			"category_id",
			"count_of_inflow_seller_contacts",
			"status",
			"status_type",
			"count_of_solved_status",
			"disposition",
			"time_spent_in_wsa(days)",
			"time_spent_in_wsc(days)",
			"time_spent_in_l1(days)",
			"time_spent_inl2(days)",
			"time_spent_in_l3(days)",
			"closed_time_spent(days)",
			"time_spent_in_l1wsa(days)",
			"time_spent_in_l2wsa(days)",
			"month",
			"partner",
			"tier",
			"domain",
		},
	})
}
