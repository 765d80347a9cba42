// Admin is a terminal view of a running room: robot roster, recent
// history and health, rendered as tables.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	ServerURL string `envconfig:"SERVER_URL" default:"http://localhost:8080"`
}

type robotRow struct {
	ID          int    `json:"ID"`
	Name        string `json:"Name"`
	Description string `json:"Description"`
	Enabled     bool   `json:"Enabled"`
}

type entryRow struct {
	Seq       uint64    `json:"Seq"`
	Author    string    `json:"Author"`
	Text      string    `json:"Text"`
	Lang      string    `json:"Lang"`
	CreatedAt time.Time `json:"CreatedAt"`
}

func main() {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	historyLimit := flag.Int("history", 10, "Number of history lines to show")
	flag.Parse()

	if err := showRoster(cfg); err != nil {
		log.Fatalf("Roster unavailable: %v", err)
	}
	fmt.Println()
	if err := showHistory(cfg, *historyLimit); err != nil {
		log.Fatalf("History unavailable: %v", err)
	}
}

func showRoster(cfg Config) error {
	var robots []robotRow
	if err := fetch(cfg.ServerURL+"/robochatters", &robots); err != nil {
		return err
	}

	table := newTable([]string{"ID", "Name", "Persona", "State"})
	for _, robot := range robots {
		state := color.New(color.FgRed).Render("asleep")
		if robot.Enabled {
			state = color.New(color.FgGreen).Render("awake")
		}
		table.Append([]string{fmt.Sprintf("%d", robot.ID), robot.Name, robot.Description, state})
	}
	table.Render()
	return nil
}

func showHistory(cfg Config, limit int) error {
	var entries []entryRow
	if err := fetch(fmt.Sprintf("%s/history?limit=%d", cfg.ServerURL, limit), &entries); err != nil {
		return err
	}

	table := newTable([]string{"Seq", "At", "Author", "Lang", "Text"})
	for _, entry := range entries {
		table.Append([]string{
			fmt.Sprintf("%d", entry.Seq),
			entry.CreatedAt.Format("15:04:05"),
			entry.Author,
			entry.Lang,
			entry.Text,
		})
	}
	table.Render()
	return nil
}

func newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func fetch(url string, target any) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}
