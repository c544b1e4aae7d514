// Package rules holds the shop's scheduling constants in one structure so
// allocation and date logic never hard-code them. Defaults reproduce the
// values existing project data was scheduled with.
package rules
