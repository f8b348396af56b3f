package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_TYPE", "NLU_MODEL_PATH", "NLU_RULE_CONFIDENCE", "CALENDAR_PATH", "VONAGE_API_KEY", "VONAGE_API_SECRET", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	c := fromEnv()

	if c.Port != "8080" {
		t.Errorf("Port = %q, want 8080", c.Port)
	}
	if c.Database.Type != "none" {
		t.Errorf("Database.Type = %q, want none", c.Database.Type)
	}
	if c.NLU.ModelPath != "nlp_model.json" || c.NLU.VectorizerPath != "tfidf_vect.json" {
		t.Errorf("NLU paths = %q, %q", c.NLU.ModelPath, c.NLU.VectorizerPath)
	}
	if c.NLU.RuleConfidence != 0.9 || c.NLU.MaxFeatures != 5000 || c.NLU.MaxIter != 1000 {
		t.Errorf("NLU = %+v", c.NLU)
	}
	if c.Storage.CalendarPath != "calendar_db.json" || c.Storage.CRMPath != "crm_leads.csv" {
		t.Errorf("Storage = %+v", c.Storage)
	}
	if c.SMSConfigured() {
		t.Error("SMSConfigured() = true without credentials")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NLU_RULE_CONFIDENCE", "0.8")
	t.Setenv("NLU_TRAIN_ON_START", "false")
	t.Setenv("SMS_TIMEOUT", "3s")
	t.Setenv("VONAGE_API_KEY", "key")
	t.Setenv("VONAGE_API_SECRET", "secret")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	c := fromEnv()

	if c.Port != "9090" {
		t.Errorf("Port = %q, want 9090", c.Port)
	}
	if c.NLU.RuleConfidence != 0.8 {
		t.Errorf("RuleConfidence = %v, want 0.8", c.NLU.RuleConfidence)
	}
	if c.NLU.TrainOnStart {
		t.Error("TrainOnStart = true, want false")
	}
	if c.SMS.Timeout != 3*time.Second {
		t.Errorf("SMS.Timeout = %v, want 3s", c.SMS.Timeout)
	}
	if !c.SMSConfigured() {
		t.Error("SMSConfigured() = false with credentials")
	}
	want := []string{"http://a.test", "http://b.test"}
	if !reflect.DeepEqual(c.Security.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", c.Security.AllowedOrigins, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"mongodb with uri", func(c *Config) { c.Database.Type = "mongodb"; c.Database.URI = "mongodb://x" }, ""},
		{"mongodb without host", func(c *Config) { c.Database.Type = "mongodb"; c.Database.Host = "" }, "host/port"},
		{"unknown database", func(c *Config) { c.Database.Type = "postgresql" }, "unsupported database type"},
		{"zero confidence", func(c *Config) { c.NLU.RuleConfidence = 0 }, "rule confidence"},
		{"confidence above one", func(c *Config) { c.NLU.RuleConfidence = 1.5 }, "rule confidence"},
		{"half artifact paths", func(c *Config) { c.NLU.ModelPath = "" }, "set together"},
		{"unknown sms provider", func(c *Config) { c.SMS.Provider = "twilio" }, "unsupported SMS provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fromEnv()
			c.Database.Type = "none"
			c.Database.Host = "localhost"
			c.NLU.RuleConfidence = 0.9
			c.NLU.ModelPath, c.NLU.VectorizerPath = "m.json", "v.json"
			c.SMS.Provider = "vonage"
			tt.mutate(c)

			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestBuildDatabaseURI(t *testing.T) {
	c := &Config{Database: DatabaseConfig{Host: "db", Port: "27017", Name: "calls"}}
	if got := c.BuildDatabaseURI(); got != "mongodb://db:27017/calls" {
		t.Errorf("BuildDatabaseURI() = %q", got)
	}

	c.Database.Username, c.Database.Password = "u", "p"
	if got := c.BuildDatabaseURI(); got != "mongodb://u:p@db:27017/calls" {
		t.Errorf("BuildDatabaseURI() = %q", got)
	}

	c.Database.URI = "mongodb://override"
	if got := c.BuildDatabaseURI(); got != "mongodb://override" {
		t.Errorf("BuildDatabaseURI() = %q", got)
	}
}

func TestLoadRulesFile(t *testing.T) {
	dir := t.TempDir()

	rf, err := LoadRulesFile(filepath.Join(dir, "missing.yaml"))
	if err != nil || rf != nil {
		t.Fatalf("missing file: rf=%v err=%v, want nil, nil", rf, err)
	}

	path := filepath.Join(dir, "rules.yaml")
	content := `rule_confidence: 0.85
rules:
  - intent: pricing
    triggers: ["price", "how much"]
  - intent: book_viewing
    triggers: ["book"]
text_columns: [utterance]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rf, err = LoadRulesFile(path)
	if err != nil {
		t.Fatalf("LoadRulesFile: %v", err)
	}
	if rf.RuleConfidence != 0.85 {
		t.Errorf("RuleConfidence = %v, want 0.85", rf.RuleConfidence)
	}
	if len(rf.Rules) != 2 || rf.Rules[0].Intent != "pricing" || rf.Rules[1].Intent != "book_viewing" {
		t.Errorf("Rules = %+v, want pricing then book_viewing", rf.Rules)
	}
	if !reflect.DeepEqual(rf.TextColumns, []string{"utterance"}) {
		t.Errorf("TextColumns = %v", rf.TextColumns)
	}
}

func TestLoadRulesFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no triggers", "rules:\n  - intent: pricing\n"},
		{"no intent", "rules:\n  - triggers: [x]\n"},
		{"bad confidence", "rule_confidence: 2\nrules: []\n"},
		{"not yaml", "rules: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadRulesFile(path); err == nil {
				t.Error("LoadRulesFile() = nil error, want error")
			}
		})
	}
}
