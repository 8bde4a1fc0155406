package models

// ContactRequest mirrors the portfolio contact form. Company is a honeypot:
// the rendered form hides it, so a populated value means a bot filled it in.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Title   string `json:"title,omitempty"`
	Time    string `json:"time,omitempty"`
	Company string `json:"company,omitempty"`
}
