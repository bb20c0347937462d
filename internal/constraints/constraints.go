// Package constraints maps an employer to the vocabulary rules the tailored
// CV must honor. Large employers reject documents that name them (or their
// subsidiaries) in work history, so each class carries the terms to avoid
// and the neutral phrasing to use instead.
package constraints

import "strings"

// Class identifies a constraint vocabulary.
type Class string

const (
	ClassMeta     Class = "meta"
	ClassAmazon   Class = "amazon"
	ClassGoogle   Class = "google"
	ClassStandard Class = "standard"
)

// Profile is the set of rules applied when tailoring for one employer class.
type Profile struct {
	Class        Class
	Prohibited   []string
	Replacements map[string]string
}

// Rules renders the profile as prompt-ready instruction lines.
func (p Profile) Rules() []string {
	rules := make([]string, 0, len(p.Prohibited)+len(p.Replacements))
	for _, term := range p.Prohibited {
		rules = append(rules, "Never mention \""+term+"\" anywhere in the document.")
	}
	for from, to := range p.Replacements {
		rules = append(rules, "Refer to \""+from+"\" as \""+to+"\".")
	}
	return rules
}

var profiles = map[Class]Profile{
	ClassMeta: {
		Class:      ClassMeta,
		Prohibited: []string{"Meta", "Facebook", "Instagram", "WhatsApp", "Oculus"},
		Replacements: map[string]string{
			"Meta":     "a large social media company",
			"Facebook": "a large social media company",
		},
	},
	ClassAmazon: {
		Class:      ClassAmazon,
		Prohibited: []string{"Amazon", "AWS", "Twitch", "Ring", "Audible", "IMDb", "Whole Foods"},
		Replacements: map[string]string{
			"Amazon": "a large e-commerce and cloud company",
			"AWS":    "a major cloud provider",
		},
	},
	ClassGoogle: {
		Class:      ClassGoogle,
		Prohibited: []string{"Google", "Alphabet", "YouTube", "Waymo", "DeepMind", "Verily"},
		Replacements: map[string]string{
			"Google":   "a large search and advertising company",
			"Alphabet": "a large technology holding company",
		},
	},
	ClassStandard: {
		Class: ClassStandard,
	},
}

// aliases resolve an employer name to its class. Single-word aliases match
// whole words only, so "Spring Health" does not resolve through "ring";
// multi-word aliases match as substrings.
var aliases = []struct {
	term  string
	class Class
}{
	{"meta", ClassMeta},
	{"facebook", ClassMeta},
	{"instagram", ClassMeta},
	{"whatsapp", ClassMeta},
	{"oculus", ClassMeta},
	{"amazon", ClassAmazon},
	{"aws", ClassAmazon},
	{"twitch", ClassAmazon},
	{"ring", ClassAmazon},
	{"audible", ClassAmazon},
	{"imdb", ClassAmazon},
	{"whole foods", ClassAmazon},
	{"google", ClassGoogle},
	{"alphabet", ClassGoogle},
	{"youtube", ClassGoogle},
	{"waymo", ClassGoogle},
	{"deepmind", ClassGoogle},
	{"verily", ClassGoogle},
}

// Resolve returns the constraint profile for an employer name. Unrecognized
// employers get the standard profile.
func Resolve(employer string) Profile {
	name := strings.ToLower(employer)
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(name, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		words[w] = true
	}

	for _, alias := range aliases {
		if strings.Contains(alias.term, " ") {
			if strings.Contains(name, alias.term) {
				return profiles[alias.class]
			}
			continue
		}
		if words[alias.term] {
			return profiles[alias.class]
		}
	}
	return profiles[ClassStandard]
}
