package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/mcdev12/tierdraft/go/internal/models"
	"gopkg.in/yaml.v3"
)

// Seed is the optional YAML file with notification routing and the divisions to create
// on startup when they do not exist yet.
type Seed struct {
	Notify struct {
		Routes map[string]string `yaml:"routes"`
	} `yaml:"notify"`
	Divisions []DivisionSeed `yaml:"divisions"`
}

type DivisionSeed struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	DraftStyle  string     `yaml:"draft_style"`
	TimerLength int        `yaml:"timer_length"`
	ChannelID   string     `yaml:"channel_id"`
	RandomOrder bool       `yaml:"random_order"`
	Teams       []TeamSeed `yaml:"teams"`
}

type TeamSeed struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Coach struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"coach"`
}

// LoadSeed reads a seed file. An empty path yields an empty seed.
func LoadSeed(path string) (*Seed, error) {
	if path == "" {
		return &Seed{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

// Division converts the seed entry into a pre-draft division.
func (d DivisionSeed) Division() (*models.Division, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("division %q: invalid id: %w", d.Name, err)
	}

	style := models.DraftStyle(d.DraftStyle)
	switch style {
	case "":
		style = models.DraftStyleSnake
	case models.DraftStyleSnake, models.DraftStyleLinear:
	default:
		return nil, fmt.Errorf("division %s: unknown draft style %q", id, d.DraftStyle)
	}

	timer := d.TimerLength
	if timer <= 0 {
		timer = 240
	}
	if len(d.Teams) == 0 {
		return nil, fmt.Errorf("division %s: no teams", id)
	}

	div := &models.Division{
		ID:          id,
		Name:        d.Name,
		DraftStyle:  style,
		Status:      models.DivisionStatusPreDraft,
		TimerLength: timer,
		ChannelID:   d.ChannelID,
		RandomOrder: d.RandomOrder,
	}
	seen := make(map[uuid.UUID]bool, len(d.Teams))
	for _, t := range d.Teams {
		teamID, err := uuid.Parse(t.ID)
		if err != nil {
			return nil, fmt.Errorf("division %s: team %q: invalid id: %w", id, t.Name, err)
		}
		if seen[teamID] {
			return nil, fmt.Errorf("division %s: duplicate team %s", id, teamID)
		}
		seen[teamID] = true
		div.Teams = append(div.Teams, &models.Team{
			ID:    teamID,
			Name:  t.Name,
			Coach: models.Coach{ID: t.Coach.ID, Name: t.Coach.Name},
		})
	}
	return div, nil
}
