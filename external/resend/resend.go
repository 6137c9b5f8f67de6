package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type ResendMailer struct {
	apiKey  string
	from    string
	client  *http.Client
	baseURL string
}

func NewResendMailer(apiKey, from string) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, errors.New("resend api key not set")
	}

	return &ResendMailer{
		apiKey: apiKey,
		from:   from,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: "https://api.resend.com",
	}, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (m *ResendMailer) SendVerificationEmail(
	ctx context.Context,
	toEmail string,
	verifyURL string,
	code string,
) error {
	html := fmt.Sprintf(`
		<h2>Verify Your Email</h2>
		<p>Code: <b>%s</b></p>
		<p>Or verify by clicking the link below:</p>
		<p><a href="%s">Verify Email</a></p>
		<p>Expires in 10 minutes</p>
	`, code, verifyURL)

	return m.send(ctx, toEmail, "Verify Your Email", html)
}

func (m *ResendMailer) SendPasswordRecoveryEmail(
	ctx context.Context,
	toEmail string,
	resetURL string,
) error {
	html := fmt.Sprintf(`
		<h2>Password Reset</h2>
		<p><a href="%s">Reset Password</a></p>
		<p>Expires in 10 minutes</p>
	`, resetURL)

	return m.send(ctx, toEmail, "Password Reset", html)
}

func (m *ResendMailer) send(ctx context.Context, toEmail, subject, html string) error {
	body := sendRequest{
		From:    m.from,
		To:      []string{toEmail},
		Subject: subject,
		HTML:    html,
	}

	b, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		m.baseURL+"/emails",
		bytes.NewBuffer(b),
	)

	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		return errors.New("failed to send email: " + buf.String())
	}

	return nil
}
