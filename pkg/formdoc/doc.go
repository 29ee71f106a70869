// Package formdoc loads declarative form documents from JSON or YAML and
// turns them into formlets. A document lists its fields in display order;
// each field is matched to a widget capability through widgets.Registry, so
// callers can route custom kinds to their own widgets without touching the
// builder.
package formdoc
