// Package config defines the format-agnostic declaration model for a
// pipeline: triggers, job templates, matrix axes and steps. Loaders for
// concrete dialects (HCL, YAML) translate their input into this model, and
// everything downstream of the loaders operates on it exclusively.
package config
