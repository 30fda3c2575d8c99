package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tormodhaugland/pf/internal/config"
	"github.com/tormodhaugland/pf/internal/prompt"
	"github.com/tormodhaugland/pf/internal/template"
)

// looksLikePath reports whether arg names a file rather than a library
// template.
func looksLikePath(arg string) bool {
	if strings.ContainsAny(arg, `/\`) {
		return true
	}
	if _, err := os.Stat(arg); err == nil {
		return true
	}
	return false
}

// loadTemplate loads arg into s. arg is either a template file or the name
// of a library or starter template.
func loadTemplate(ctx context.Context, s *prompt.Session, cfg *config.Config, arg string) error {
	if looksLikePath(arg) {
		h, err := template.OpenSource(arg)
		if err != nil {
			return err
		}
		return s.LoadTemplate(ctx, h)
	}

	templates, err := template.List(cfg.LibraryDir)
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}
	t, ambiguous, err := template.Find(templates, arg)
	if err != nil {
		return err
	}
	if ambiguous {
		warnf("%q matches several templates, using %s", arg, t.Name)
	}
	s.Replace(t.Name, t.Body, t.Source())
	return nil
}

// readTemplateText returns the scanned text of arg without starting a session.
func readTemplateText(ctx context.Context, cfg *config.Config, arg string) (string, error) {
	s := prompt.NewSession()
	if err := loadTemplate(ctx, s, cfg, arg); err != nil {
		return "", err
	}
	return prompt.Join(s.Snapshot().Segments), nil
}
