package notify

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dharsanguruparan/CreativeBrief/internal/export"
)

// CompletionSubject is the subject line of the completion email.
const CompletionSubject = "Your Creative Direction Questionnaire Submission"

var htmlBody = htmltemplate.Must(htmltemplate.New("html").Parse(`<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <h2>Thank you for completing the Creative Direction Questionnaire! 🎨</h2>
    <p>Hi {{.Name}},</p>
    <p>We've received your questionnaire responses. Your creative direction data is attached as a JSON file.</p>
    <h3>What's Next?</h3>
    <ul>
        <li>Review your responses in the attached JSON file</li>
        <li>We'll use this to create your custom creative direction deck</li>
        <li>Expect to hear from us within 2-3 business days</li>
    </ul>
    <p>If you have any questions, feel free to reply to this email.</p>
    <p>Best regards,<br>
    <strong>Creative Direction Team</strong></p>
</body>
</html>
`))

var textBody = texttemplate.Must(texttemplate.New("text").Parse(`Thank you for completing the Creative Direction Questionnaire!

Hi {{.Name}},

We've received your questionnaire responses. Your creative direction data is attached as a JSON file.

What's Next?
- Review your responses in the attached JSON file
- We'll use this to create your custom creative direction deck
- Expect to hear from us within 2-3 business days

If you have any questions, feel free to reply to this email.

Best regards,
Creative Direction Team
`))

// GreetingName derives a display name from the local part of an address.
func GreetingName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return cases.Title(language.English).String(local)
}

// CompletionMessage renders the thank-you email carrying the export as a JSON
// attachment.
func CompletionMessage(email, sessionID string, attachment []byte) (Message, error) {
	data := struct{ Name string }{Name: GreetingName(email)}
	var html, text bytes.Buffer
	if err := htmlBody.Execute(&html, data); err != nil {
		return Message{}, err
	}
	if err := textBody.Execute(&text, data); err != nil {
		return Message{}, err
	}
	return Message{
		SessionID:      sessionID,
		To:             email,
		Subject:        CompletionSubject,
		HTML:           html.String(),
		Text:           text.String(),
		Attachment:     attachment,
		AttachmentName: export.AttachmentName(sessionID),
	}, nil
}
