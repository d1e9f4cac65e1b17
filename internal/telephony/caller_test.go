package telephony

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/opencare/medagent/internal/log"
)

// fakeAPI records CreateCall parameters and returns a canned result.
type fakeAPI struct {
	lastParams *twilioapi.CreateCallParams
	sid        string
	err        error
}

func (f *fakeAPI) CreateCall(params *twilioapi.CreateCallParams) (*twilioapi.ApiV2010Call, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return &twilioapi.ApiV2010Call{Sid: &f.sid}, nil
}

func testConfig() Config {
	return Config{
		AccountSID:       "AC123",
		AuthToken:        "token",
		FromNumber:       "+15550001111",
		EmergencyContact: "+15550002222",
	}
}

func TestPlace_Success(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{sid: "CA42"}
	c := newCallerWithAPI(testConfig(), api, log.NewNop())

	sid, err := c.Place("Patient reports chest pain")
	require.NoError(t, err)
	assert.Equal(t, "CA42", sid)

	require.NotNil(t, api.lastParams)
	assert.Equal(t, "+15550002222", *api.lastParams.To)
	assert.Equal(t, "+15550001111", *api.lastParams.From)
	assert.Contains(t, *api.lastParams.Twiml, "Patient reports chest pain")
	assert.Contains(t, *api.lastParams.Twiml, "automated emergency call")
}

func TestPlace_DefaultsMessage(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{sid: "CA1"}
	c := newCallerWithAPI(testConfig(), api, log.NewNop())

	_, err := c.Place("")
	require.NoError(t, err)
	assert.Contains(t, *api.lastParams.Twiml, DefaultMessage)
}

func TestPlace_NotConfigured(t *testing.T) {
	t.Parallel()

	c := NewCaller(Config{}, log.NewNop())

	_, err := c.Place("anything")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestReport(t *testing.T) {
	t.Parallel()

	t.Run("success names the call SID", func(t *testing.T) {
		t.Parallel()

		c := newCallerWithAPI(testConfig(), &fakeAPI{sid: "CA99"}, log.NewNop())
		assert.Equal(t, "Emergency call initiated successfully. Call SID: CA99", c.Report("msg"))
	})

	t.Run("missing configuration degrades safely", func(t *testing.T) {
		t.Parallel()

		c := NewCaller(Config{AccountSID: "AC123"}, log.NewNop())
		assert.Equal(t, notConfiguredReport, c.Report("msg"))
	})

	t.Run("provider failure embeds the error", func(t *testing.T) {
		t.Parallel()

		c := newCallerWithAPI(testConfig(), &fakeAPI{err: errors.New("upstream 503")}, log.NewNop())
		report := c.Report("msg")
		assert.Contains(t, report, "Failed to make emergency call")
		assert.Contains(t, report, "upstream 503")
		assert.Contains(t, report, "contact emergency services directly")
	})
}

func TestBuildTwiML_EscapesMessage(t *testing.T) {
	t.Parallel()

	twiml := buildTwiML(`severe pain & <fainting>`)
	assert.Contains(t, twiml, "severe pain &amp; &lt;fainting&gt;")
	assert.NotContains(t, twiml, "<fainting>")
}
