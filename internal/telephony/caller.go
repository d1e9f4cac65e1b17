// Package telephony places outbound emergency calls through Twilio.
//
// Both the agent's emergency tool and the gateway's direct emergency
// endpoint go through the same Caller, so call placement has a single owner.
package telephony

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/opencare/medagent/internal/log"
)

// ErrNotConfigured indicates that one or more Twilio settings are missing.
// Callers must degrade to a "configuration missing" message, never crash.
var ErrNotConfigured = errors.New("telephony: credentials not configured")

// DefaultMessage is spoken when the caller supplies no message.
const DefaultMessage = "Emergency medical assistance needed. Please call back immediately."

// disclaimer is appended to every synthesized call message.
const disclaimer = "This is an automated emergency call from the AI Medical Consulting system. " +
	"Please contact the user immediately for medical assistance."

// User-facing outcome strings shared by the tool adapter and the gateway
// endpoint.
const (
	notConfiguredReport = "Emergency call configuration missing. Please contact emergency services directly."
	successReportFormat = "Emergency call initiated successfully. Call SID: %s"
	failureReportFormat = "Failed to make emergency call: %v. Please contact emergency services directly."
)

// callCreator is the slice of the Twilio REST API used by Caller.
type callCreator interface {
	CreateCall(params *twilioapi.CreateCallParams) (*twilioapi.ApiV2010Call, error)
}

// Config holds the four settings required for call placement.
type Config struct {
	AccountSID       string
	AuthToken        string
	FromNumber       string
	EmergencyContact string
}

// configured reports whether all settings are present.
func (c Config) configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != "" && c.EmergencyContact != ""
}

// Caller places emergency voice calls.
type Caller struct {
	cfg    Config
	api    callCreator
	logger log.Logger
}

// NewCaller creates a Caller. When the configuration is incomplete the
// Caller is still usable: Place returns ErrNotConfigured and Report degrades
// to a safe message.
func NewCaller(cfg Config, logger log.Logger) *Caller {
	c := &Caller{cfg: cfg, logger: logger}
	if cfg.configured() {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		})
		c.api = client.Api
	}
	return c
}

// newCallerWithAPI injects a fake Twilio API. Tests only.
func newCallerWithAPI(cfg Config, api callCreator, logger log.Logger) *Caller {
	return &Caller{cfg: cfg, api: api, logger: logger}
}

// Place creates one outbound call speaking message plus the fixed
// disclaimer, and returns the provider call SID.
func (c *Caller) Place(message string) (string, error) {
	if message == "" {
		message = DefaultMessage
	}
	if c.api == nil || !c.cfg.configured() {
		return "", ErrNotConfigured
	}

	params := &twilioapi.CreateCallParams{}
	params.SetTo(c.cfg.EmergencyContact)
	params.SetFrom(c.cfg.FromNumber)
	params.SetTwiml(buildTwiML(message))

	call, err := c.api.CreateCall(params)
	if err != nil {
		return "", fmt.Errorf("creating call: %w", err)
	}

	sid := ""
	if call.Sid != nil {
		sid = *call.Sid
	}
	c.logger.Info("emergency call placed", "sid", sid, "to", c.cfg.EmergencyContact)
	return sid, nil
}

// Report places a call and converts the outcome to user-safe text.
// It never returns an error; every failure mode maps to a fixed message
// recommending direct contact with emergency services.
func (c *Caller) Report(message string) string {
	sid, err := c.Place(message)
	switch {
	case errors.Is(err, ErrNotConfigured):
		return notConfiguredReport
	case err != nil:
		c.logger.Error("emergency call failed", "error", err)
		return fmt.Sprintf(failureReportFormat, err)
	default:
		return fmt.Sprintf(successReportFormat, sid)
	}
}

// buildTwiML renders the voice response document for the call.
func buildTwiML(message string) string {
	var buf bytes.Buffer
	buf.WriteString("<Response><Say voice=\"alice\">")
	_ = xml.EscapeText(&buf, []byte(message))
	buf.WriteString("</Say><Say voice=\"alice\">")
	_ = xml.EscapeText(&buf, []byte(disclaimer))
	buf.WriteString("</Say></Response>")
	return buf.String()
}
