package mqtt

import "testing"

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		filter string
		topic  string
		want   bool
	}{
		{"node/N1/params/local", "node/N1/params/local", true},
		{"node/N1/params/local", "node/N2/params/local", false},
		{"node/+/params/local", "node/N1/params/local", true},
		{"node/+/params/local", "node/N1/status/local", false},
		{"node/+/params/local", "node/N1/extra/params/local", false},
		{"node/#", "node/N1/params/local", true},
		{"node/#", "node", true},
		{"node/#", "nod", false},
		{"#", "anything/at/all", true},
		{"+/+", "a/b", true},
		{"+/+", "a/b/c", false},
		{"node/+", "node/", true},
		{"node/N1", "node/N1/params", false},
	}

	for _, tt := range tests {
		if got := topicMatches(tt.filter, tt.topic); got != tt.want {
			t.Errorf("topicMatches(%q, %q) = %v, want %v", tt.filter, tt.topic, got, tt.want)
		}
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(nil); err == nil {
		t.Error("NewClient accepted a nil config")
	}
	if _, err := NewClient(&ClientConfig{BrokerURL: "://not-a-url"}); err == nil {
		t.Error("NewClient accepted an invalid broker URL")
	}

	c, err := NewClient(&ClientConfig{BrokerURL: "tls://broker.example:8883"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	pc := c.(*pahoClient)
	if pc.cfg.ClientID == "" {
		t.Error("default client id was not generated")
	}
}
