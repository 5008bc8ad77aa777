package pipeline

import (
	"math/rand"
	"sort"

	"github.com/mathforge-ai/mathforge/pkg/config"
)

// Task is one unit of generation work: what the engineer should draft.
type Task struct {
	Subject string
	Topic   string
	Seed    string
}

// TaskSource supplies the task for attempt seq. Sources must be safe for
// concurrent use only if the orchestrator launches attempts concurrently;
// the orchestrator draws tasks on its own goroutine, so plain functions
// are fine.
type TaskSource func(seq int) Task

// FixedSource always yields the same subject, topic, and optional seed
// problem.
func FixedSource(subject, topic, seed string) TaskSource {
	return func(int) Task {
		return Task{Subject: subject, Topic: topic, Seed: seed}
	}
}

// TaxonomySource draws a random subject and topic per attempt from a
// subject -> topics taxonomy. Subjects are walked in sorted order so a
// seeded rng yields a reproducible draw sequence.
func TaxonomySource(taxonomy map[string][]string, rng *rand.Rand) TaskSource {
	subjects := make([]string, 0, len(taxonomy))
	for s := range taxonomy {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	return func(int) Task {
		if len(subjects) == 0 {
			return Task{}
		}
		subject := subjects[rng.Intn(len(subjects))]
		topics := taxonomy[subject]
		if len(topics) == 0 {
			return Task{Subject: subject}
		}
		return Task{Subject: subject, Topic: topics[rng.Intn(len(topics))]}
	}
}

// SourceFromConfig builds the task source the run will use: an explicit
// subject/topic wins over the taxonomy.
func SourceFromConfig(cfg *config.Config, seed string, rng *rand.Rand) TaskSource {
	if cfg.Subject != "" {
		return FixedSource(cfg.Subject, cfg.Topic, seed)
	}
	return TaxonomySource(cfg.Taxonomy, rng)
}
