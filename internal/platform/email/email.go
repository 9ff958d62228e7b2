package email

// Message is a single outbound email.
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	HTMLBody  string
	TextBody  string
}

// Service sends one message and reports delivery failure synchronously, so the
// caller can decide whether to record the send.
type Service interface {
	Send(msg Message) error
}
