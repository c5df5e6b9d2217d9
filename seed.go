package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"marketplace-feed/dao"
	"marketplace-feed/model"
	"marketplace-feed/usecase"
)

type seedFile struct {
	Users []seedUser `yaml:"users"`
	Items []seedItem `yaml:"items"`
}

// seedUser has no preferences field; preferences are only ever written by
// preference adaptation.
type seedUser struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type seedItem struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Categories []string `yaml:"categories"`
	Details    string   `yaml:"details"`
	Price      int      `yaml:"price"`
	Status     string   `yaml:"status"`
	Owner      string   `yaml:"owner"`
}

// parseSeed decodes a fixture. Unknown keys are rejected so a typo or a
// stale field does not silently load partial data.
func parseSeed(b []byte) (*seedFile, error) {
	var f seedFile
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	for i := range f.Users {
		if f.Users[i].ID == "" {
			f.Users[i].ID = usecase.NewID()
		}
	}
	for i, it := range f.Items {
		if it.Name == "" || it.Owner == "" {
			return nil, fmt.Errorf("item %d: name and owner are required", i)
		}
		switch model.ItemStatus(it.Status) {
		case "", model.StatusActive, model.StatusSold, model.StatusRemoved:
		default:
			return nil, fmt.Errorf("item %q: unknown status %q", it.Name, it.Status)
		}
		if it.ID == "" {
			f.Items[i].ID = usecase.NewID()
		}
	}
	return &f, nil
}

func (s seedUser) toModel() *model.User {
	return &model.User{ID: s.ID, Name: s.Name, Email: s.Email}
}

func (s seedItem) toModel() *model.Item {
	return &model.Item{
		ID:         s.ID,
		Name:       s.Name,
		Categories: s.Categories,
		Details:    s.Details,
		Price:      s.Price,
		Status:     model.ItemStatus(s.Status),
		OwnerID:    s.Owner,
	}
}

type userInserter interface {
	Insert(ctx context.Context, user *model.User) error
}

type itemInserter interface {
	Insert(ctx context.Context, item *model.Item) error
}

func applySeed(ctx context.Context, f *seedFile, users userInserter, items itemInserter) error {
	for _, u := range f.Users {
		if err := users.Insert(ctx, u.toModel()); err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
	}
	for _, it := range f.Items {
		if err := items.Insert(ctx, it.toModel()); err != nil {
			return fmt.Errorf("item %s: %w", it.Name, err)
		}
	}
	return nil
}

func seedCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(c.String("file"))
	if err != nil {
		return err
	}
	f, err := parseSeed(b)
	if err != nil {
		return fmt.Errorf("seed file: %w", err)
	}

	conn, err := openDB(c.Context, cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := applySeed(c.Context, f, dao.NewUserRepository(conn), dao.NewItemRepository(conn)); err != nil {
		return err
	}
	log.Info().Int("users", len(f.Users)).Int("items", len(f.Items)).Msg("seed completed")
	return nil
}
