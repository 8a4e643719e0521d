package cataloging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/lehigh-university-libraries/lotcataloger/internal/config"
	"github.com/lehigh-university-libraries/lotcataloger/internal/models"
	"github.com/lehigh-university-libraries/lotcataloger/internal/providers"
	"golang.org/x/time/rate"
)

// promptData is what the prompt template is rendered with
type promptData struct {
	LotKey  string
	Images  []string
	URLList []string
	URLs    string
}

// Description is the outcome of one provider call for a lot
type Description struct {
	URLs  []string
	Tiers Tiers
}

// Requester builds the prompt for a lot and asks the provider to describe it
type Requester struct {
	provider      providers.Provider
	gen           config.Generation
	publicBaseURL string
	tmpl          *template.Template
	limiter       *rate.Limiter
}

// NewRequester prepares the prompt template and optional throttle from cfg
func NewRequester(provider providers.Provider, cfg *config.Config) (*Requester, error) {
	gen := cfg.Generation
	gen.Model = cfg.ResolveModel()

	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(gen.PromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}

	r := &Requester{
		provider:      provider,
		gen:           gen,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		tmpl:          tmpl,
	}
	if gen.MinInterval > 0 {
		r.limiter = rate.NewLimiter(rate.Every(gen.MinInterval), 1)
	}
	return r, nil
}

// PublicURL is where the image is expected to be reachable; it is not checked
func (r *Requester) PublicURL(filename string) string {
	return r.publicBaseURL + "/" + filename
}

// Prompt renders the prompt template for the group
func (r *Requester) Prompt(group models.LotGroup, urls []string) (string, error) {
	var sb strings.Builder
	err := r.tmpl.Execute(&sb, promptData{
		LotKey:  group.LotKey,
		Images:  group.Images,
		URLList: urls,
		URLs:    strings.Join(urls, ", "),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return sb.String(), nil
}

// Failed returns the description of a lot that was never sent to the provider
func (r *Requester) Failed(group models.LotGroup) Description {
	return Description{URLs: r.urls(group), Tiers: failedTiers(r.gen.Placeholders)}
}

func (r *Requester) urls(group models.LotGroup) []string {
	urls := make([]string, 0, len(group.Images))
	for _, img := range group.Images {
		urls = append(urls, r.PublicURL(img))
	}
	return urls
}

// Describe makes one provider call for the group. On failure the returned
// description carries the failure placeholder in every tier together with the error.
func (r *Requester) Describe(ctx context.Context, group models.LotGroup) (Description, error) {
	desc := Description{URLs: r.urls(group)}

	text, err := r.generate(ctx, group, desc.URLs)
	if err != nil {
		desc.Tiers = failedTiers(r.gen.Placeholders)
		return desc, err
	}

	desc.Tiers = Segment(text, r.gen.Placeholders)
	return desc, nil
}

func (r *Requester) generate(ctx context.Context, group models.LotGroup, urls []string) (string, error) {
	prompt, err := r.Prompt(group, urls)
	if err != nil {
		return "", err
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("throttle: %w", err)
		}
	}

	if r.gen.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.gen.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := r.provider.ExtractText(ctx, providers.Config{
		Model:        r.gen.Model,
		Temperature:  r.gen.Temperature,
		SystemPrompt: r.gen.SystemPrompt,
		Prompt:       prompt,
	})
	if err != nil {
		return "", err
	}

	slog.Debug("Lot described", "lot", group.LotKey, "model", r.gen.Model, "images", len(group.Images), "duration", time.Since(start), "length", len(text))
	return text, nil
}
