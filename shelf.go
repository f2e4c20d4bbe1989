// Package shelf aggregates books from third-party websites described by
// declarative source documents. It runs selector rules against fetched HTML
// to find search hits, book metadata, tables of contents and chapter text,
// fans keyword searches out across every enabled source, and caches chapter
// content on first read.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, rabbitmq/).
package shelf
