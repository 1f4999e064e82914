// Package encoding provides export encoders for schedule items.
//
// Every format writes the same columns in the same order: item number,
// description, schedule fee, category, group, item type and start date.
// Start dates are rendered as DD/MM/YYYY in a configurable timezone.
package encoding
