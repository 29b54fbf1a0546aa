// Package homeassistant provides the minimal Home Assistant REST client used
// to read the now-playing entity.
//
// Only two operations matter here: fetching one entity's state (with its
// attributes, for the entity_picture image reference) and a connectivity ping
// for preflight checks. Requests authenticate with a long-lived access token.
package homeassistant
