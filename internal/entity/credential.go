package entity

// CredentialSecret — расшифрованный секрет бот-аккаунта платформы.
type CredentialSecret struct {
	APIKey        string `json:"api_key"`
	AccountCookie string `json:"account_cookie"`
	UserID        string `json:"user_id"`
}

// Credential — бот-аккаунт из пула, через который загружаются ассеты.
type Credential struct {
	Description string
	Secret      CredentialSecret
}

type ProbeOutcome int

const (
	ProbeUsable ProbeOutcome = iota
	ProbeModerated
	ProbeUnauthenticated
	ProbeAtCapacity
	ProbeFailed
)

func (o ProbeOutcome) String() string {
	switch o {
	case ProbeUsable:
		return "usable"
	case ProbeModerated:
		return "moderated"
	case ProbeUnauthenticated:
		return "unauthenticated"
	case ProbeAtCapacity:
		return "at_capacity"
	default:
		return "probe_failed"
	}
}

// QuotaProbe — результат опроса квоты загрузки для одного бот-аккаунта.
type QuotaProbe struct {
	Outcome  ProbeOutcome
	Usage    int
	Capacity int
}
