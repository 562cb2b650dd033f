package config

import "testing"

func TestFillDefaults(t *testing.T) {
	var c Config
	c.FillDefaults()

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"log level", c.App.LogLevel, "info"},
		{"redis addr", c.Redis.Addr, "127.0.0.1:6379"},
		{"collector schedule", c.Collector.Schedule, "@hourly"},
		{"score threshold", c.Collector.ScoreThreshold, 50},
		{"limit", c.Collector.Limit, 64},
		{"group size", c.Window.GroupSize, 50},
		{"max posts per user", c.Window.MaxPostsPerUser, 10},
		{"openai model", c.OpenAI.Model, "gpt-4o-mini"},
	}
	for _, tc := range checks {
		if tc.got != tc.want {
			t.Errorf("%s = %v, want %v", tc.name, tc.got, tc.want)
		}
	}
}

func TestFillDefaultsKeepsExplicitValues(t *testing.T) {
	c := Config{}
	c.Collector.ScoreThreshold = 10
	c.OpenAI.Model = "gpt-4o"
	c.FillDefaults()
	if c.Collector.ScoreThreshold != 10 {
		t.Errorf("score threshold overwritten: %d", c.Collector.ScoreThreshold)
	}
	if c.OpenAI.Model != "gpt-4o" {
		t.Errorf("model overwritten: %s", c.OpenAI.Model)
	}
}
