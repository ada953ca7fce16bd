package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
	"github.com/johnquangdev/meeting-reporter/pkg/config"
)

func testReport() entities.MeetingReport {
	item := entities.NewActionItem("Draft <launch> email")
	item.Assignee = entities.StringPtr("Bob")
	item.Deadline = entities.StringPtr("Tuesday")
	item.Priority = entities.PriorityHigh

	return entities.MeetingReport{
		MeetingTitle:  "Launch sync",
		Date:          "2024-05-01",
		Attendees:     []string{"Alice", "Bob"},
		Summary:       "Agreed on the plan.",
		KeyTopics:     []string{"launch"},
		ActionItems:   []entities.ActionItem{item, entities.NewActionItem("Book a room")},
		DecisionsMade: []string{"Ship Friday"},
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(testReport())
	require.NoError(t, err)

	assert.Contains(t, html, "<h1>Launch sync</h1>")
	assert.Contains(t, html, "Alice, Bob")
	assert.Contains(t, html, "Draft &lt;launch&gt; email")
	assert.Contains(t, html, "<td>Bob</td><td>Tuesday</td><td>high</td>")
	assert.Contains(t, html, "<td>Book a room</td><td>Unassigned</td><td>-</td><td>medium</td>")
	assert.Contains(t, html, "<li>Ship Friday</li>")
}

func TestRenderHTML_NoActionItems(t *testing.T) {
	report := testReport()
	report.ActionItems = nil
	report.DecisionsMade = nil

	html, err := RenderHTML(report)
	require.NoError(t, err)
	assert.Contains(t, html, "No action items.")
	assert.NotContains(t, html, "Decisions")
}

func TestRenderText(t *testing.T) {
	text := RenderText(testReport())
	assert.Contains(t, text, "- [HIGH] Draft <launch> email (Bob, due Tuesday)")
	assert.Contains(t, text, "- [MEDIUM] Book a room (Unassigned)")
}

func TestSendGridNotifier_Send(t *testing.T) {
	var payload map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Header().Set("X-Message-Id", "msg-123")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	n, err := NewSendGridNotifier(&config.SendGridConfig{
		APIKey:    "sg-key",
		FromEmail: "reports@example.com",
		FromName:  "Reports",
		BaseURL:   ts.URL,
	}, nil)
	require.NoError(t, err)

	res, err := n.Send(context.Background(), "m-1", testReport(), []string{"alice@example.com", "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, "msg-123", res.MessageID)
	assert.Equal(t, "m-1", res.MeetingID)

	assert.Equal(t, "Meeting Report: Launch sync (2024-05-01)", payload["subject"])
	personalizations := payload["personalizations"].([]any)
	require.Len(t, personalizations, 1)
	tos := personalizations[0].(map[string]any)["to"].([]any)
	assert.Len(t, tos, 2)
}

func TestSendGridNotifier_Rejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer ts.Close()

	n, err := NewSendGridNotifier(&config.SendGridConfig{APIKey: "k", FromEmail: "a@example.com", BaseURL: ts.URL}, nil)
	require.NoError(t, err)

	_, err = n.Send(context.Background(), "m-1", testReport(), []string{"b@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestNewSendGridNotifier_RequiresKey(t *testing.T) {
	_, err := NewSendGridNotifier(&config.SendGridConfig{FromEmail: "a@example.com"}, nil)
	assert.Error(t, err)
}
