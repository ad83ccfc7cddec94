package notify

import (
	"bytes"
	"html/template"
)

var registrationTmpl = template.Must(template.New("registration").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #060CE9;">New User Registration</h2>
  <p>A new user has registered and is awaiting approval:</p>
  <div style="background-color: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <p><strong>Username:</strong> {{.Username}}</p>
    <p><strong>Email:</strong> {{.Email}}</p>
    <p><strong>User ID:</strong> {{.UserID}}</p>
  </div>
  <p>To approve this user, visit:</p>
  <a href="{{.Link}}" style="display: inline-block; background-color: #060CE9; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px;">Go to Admin Dashboard</a>
</div>`))

var approvalTmpl = template.Must(template.New("approval").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #060CE9;">Account Approved!</h2>
  <p>Hi {{.Username}},</p>
  <p>Your Jeopardy Training account has been approved. You can now log in and start practicing.</p>
  <a href="{{.Link}}" style="display: inline-block; background-color: #060CE9; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px;">Log In Now</a>
  <p>Happy studying!</p>
</div>`))

type Account struct {
	UserID   string
	Username string
	Email    string
}

// Notifier builds account emails and hands them to the dispatcher.
type Notifier struct {
	dispatcher *Dispatcher
	adminEmail string
	baseURL    string
}

func NewNotifier(dispatcher *Dispatcher, adminEmail, baseURL string) *Notifier {
	return &Notifier{dispatcher: dispatcher, adminEmail: adminEmail, baseURL: baseURL}
}

// Registered tells the admin about a pending account. Skipped without an admin address.
func (n *Notifier) Registered(acct Account) bool {
	if n.adminEmail == "" {
		return false
	}
	html, err := render(registrationTmpl, acct, n.baseURL+"/admin")
	if err != nil {
		return false
	}
	return n.dispatcher.Enqueue("registration", Message{
		To:      []string{n.adminEmail},
		Subject: "New User Registration Pending Approval",
		HTML:    html,
	})
}

// Approved tells the user they can log in.
func (n *Notifier) Approved(acct Account) bool {
	html, err := render(approvalTmpl, acct, n.baseURL+"/login")
	if err != nil {
		return false
	}
	return n.dispatcher.Enqueue("approval", Message{
		To:      []string{acct.Email},
		Subject: "Your Account Has Been Approved!",
		HTML:    html,
	})
}

func render(tmpl *template.Template, acct Account, link string) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct {
		Account
		Link string
	}{acct, link})
	return buf.String(), err
}
