// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package persona

// builtins are the ready-made personas that ship with zaviye. They
// exist independently of the store: the registry only persists custom
// personas and overrides, so a fresh install always has these three.
//
// Declaration order is the stable fallback order when sorting personas
// that have never been used.
var builtins = []Persona{
	{
		ID:          "glitch",
		Name:        "Glitch",
		Prompt:      glitchPrompt,
		IsDefault:   true,
		Placeholder: "Enter formal text to convert...",
		IntroMessage: "Transform formal text into authentic internet speak. " +
			"Drop your text here and watch it become natural, conversational, and real.",
		Description: "Glitch converts formal or technical text into authentic casual internet speech " +
			"while preserving 100% of the original meaning. Perfect for making your messages sound " +
			"natural and conversational. You can add parameters like '+emotion' for expressive output, " +
			"'+formal' to maintain professionalism, or '+variants=3' for multiple options. " +
			"Just paste your text and get instant transformation.",
		DemoPrompts: []string{
			"The board has decided to postpone the quarterly review meeting until next week to accommodate the new project timelines.",
			"Our analysis indicates a statistically significant correlation between user engagement and the implementation of the new feature.",
			"Per my previous email, please ensure all documentation is updated in Confluence prior to the client demonstration.",
			"I am writing to formally request an extension for the submission deadline of the Q3 performance report.",
		},
	},
	{
		ID:          "blame",
		Name:        "Blame",
		Prompt:      blamePrompt,
		IsDefault:   true,
		Placeholder: "Paste git status, changed files, and a description...",
		IntroMessage: "Craft professional git commits that follow best practices. " +
			"Share your changes and get perfectly formatted commit messages.",
		Description: "Blame generates professional git commit messages following Conventional Commits " +
			"standards. Simply paste your git status output, list changed files, and describe what you " +
			"did. Blame analyzes your changes and creates properly formatted commit messages that your " +
			"team will appreciate. Perfect for maintaining clean git history and following best practices.",
		DemoPrompts: []string{
			"git status: modified: src/components/ui/button.tsx\nidea: updated button styles to match new design system",
			"changed files: src/utils/api.ts, src/hooks/use-data.ts\nidea: refactored api calls to use new auth middleware",
			"git status: new file: docs/new-feature.md, modified: README.md\nidea: added documentation for the new import feature",
			"changed files: package.json, yarn.lock\nidea: upgraded nextjs and other dependencies",
		},
	},
	{
		ID:          "reson",
		Name:        "Reson",
		Prompt:      resonPrompt,
		IsDefault:   true,
		Placeholder: "Enter words to pronounce, e.g., onomatopoeia, ambiguous",
		IntroMessage: "Master pronunciation of any English word. " +
			"Type a word or phrase for a detailed pronunciation guide.",
		Description: "Reson provides detailed pronunciation guides for any English word or phrase using " +
			"only standard English letters - no complex phonetic symbols. Just type a word like " +
			"'pronunciation' and get step-by-step guides showing syllable breakdown, stress patterns, " +
			"and practice tips. Ideal for learning technical terms, names, or difficult vocabulary.",
		DemoPrompts: []string{"Worcestershire", "Anemone", "Onomatopoeia", "Phenomenon"},
	},
}

// IsBuiltin reports whether id names one of the shipped personas.
func IsBuiltin(id string) bool {
	for i := range builtins {
		if builtins[i].ID == id {
			return true
		}
	}
	return false
}

// builtinByID returns a copy of the builtin with the given id.
func builtinByID(id string) (Persona, bool) {
	for i := range builtins {
		if builtins[i].ID == id {
			return clonePersona(builtins[i]), true
		}
	}
	return Persona{}, false
}

// Builtins returns copies of the shipped personas in declaration order.
func Builtins() []Persona {
	out := make([]Persona, len(builtins))
	for i := range builtins {
		out[i] = clonePersona(builtins[i])
	}
	return out
}

func clonePersona(p Persona) Persona {
	if p.DemoPrompts != nil {
		p.DemoPrompts = append([]string(nil), p.DemoPrompts...)
	}
	return p
}
