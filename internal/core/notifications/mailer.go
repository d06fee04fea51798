package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type mailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendMail posts one message to the mail-relay API. Delivery is best effort;
// callers never surface a failure to the end user.
func SendMail(apiURL, to, subject, body string) error {
	jsonData, err := json.Marshal(mailPayload{To: to, Subject: subject, Body: body})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "TitanBank-Mailer/1.0")

	// Don't let a slow relay hold a connection open.
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("mail relay returned error: %d", resp.StatusCode)
}

// OTPMessage renders the body of an OTP email. The plaintext code exists only
// here and in the outbound message, never in an HTTP response.
func OTPMessage(code string) (subject, body string) {
	subject = "Your OTP for Verification"
	body = fmt.Sprintf("Hello,\n\nYour One-Time Password (OTP) is: %s\n\n"+
		"This OTP is valid for a short duration of 5 minutes.\n\nBest regards,\nTitan Bank", code)
	return subject, body
}
