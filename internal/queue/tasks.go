package queue

const (
	TypeBillingEmail = "billing:email"

	QueueBilling = "billing"
)

type BillingEmailPayload struct {
	TenantID   string `json:"tenant_id"`
	Email      string `json:"email"`
	Summary    string `json:"summary"`
	TotalUsage int    `json:"total_usage"`
}
