package payment

import "strings"

type Method string

const (
	MethodCOD        Method = "cod"
	MethodCard       Method = "card"
	MethodUPI        Method = "upi"
	MethodNetBanking Method = "netbanking"
	MethodWallet     Method = "wallet"
)

var methods = map[Method]bool{
	MethodCOD:        true,
	MethodCard:       true,
	MethodUPI:        true,
	MethodNetBanking: true,
	MethodWallet:     true,
}

func ParseMethod(raw string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(raw)))
	if !methods[m] {
		return "", ErrInvalidMethod.WithDetail("method", raw)
	}
	return m, nil
}

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

// Result is the confirmation a payment processor hands back to the client,
// recorded against the order verbatim.
type Result struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

func (r Result) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrInvalidResult.WithDetail("field", "id")
	}
	if strings.TrimSpace(r.Status) == "" {
		return ErrInvalidResult.WithDetail("field", "status")
	}
	return nil
}
