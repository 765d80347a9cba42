// Trigger drives the room from outside: it calls the automated turn
// endpoint on a randomized cadence, mimicking a cron with jitter. Run it
// against a deployment that has no in-process scheduler, or to liven up
// a quiet room during demos.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// typingLead is how long the composing indicator shows before the turn
// itself is requested.
const typingLead = 3 * time.Second

type Config struct {
	ServerURL    string        `envconfig:"SERVER_URL" default:"http://localhost:8080"`
	Token        string        `envconfig:"TRIGGER_TOKEN" required:"true"`
	MeanInterval time.Duration `envconfig:"TRIGGER_MEAN_INTERVAL" default:"30s"`
}

func main() {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	color.Infoln("Triggering automated turns against", cfg.ServerURL)
	for {
		sleep := cfg.MeanInterval/2 + time.Duration(rand.Int63n(int64(cfg.MeanInterval)))
		time.Sleep(sleep)

		if err := notifyTyping(cfg); err != nil {
			color.Warnln("Typing notice failed:", err)
		} else {
			time.Sleep(typingLead)
		}
		if err := trigger(cfg); err != nil {
			color.Warnln("Trigger failed:", err)
		}
	}
}

// notifyTyping shows the room a composing indicator covering the lead
// time plus a rough generation window.
func notifyTyping(cfg Config) error {
	payload := fmt.Sprintf(`{"duration_ms":%d}`, (typingLead + 5*time.Second).Milliseconds())
	req, err := http.NewRequest(http.MethodPost, cfg.ServerURL+"/robot_typing", strings.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.Token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func trigger(cfg Config) error {
	req, err := http.NewRequest(http.MethodPost, cfg.ServerURL+"/protected_task", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.Token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	switch resp.StatusCode {
	case http.StatusOK:
		var result struct {
			Text    string `json:"text"`
			Skipped string `json:"skipped"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return err
		}
		if result.Skipped != "" {
			color.Infoln("Turn skipped:", result.Skipped)
		} else {
			color.Successln("Robot said:", result.Text)
		}
	case http.StatusConflict:
		color.Infoln("Turn already in flight")
	default:
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
