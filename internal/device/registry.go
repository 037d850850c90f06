package device

import "crypto/subtle"

// Registry answers whether a (device id, api key) pair belongs to a known
// kiosk. It is a pure lookup against the table fixed at process start.
type Registry struct {
	keys map[string]string
}

func NewRegistry(keys map[string]string) *Registry {
	table := make(map[string]string, len(keys))
	for id, key := range keys {
		table[id] = key
	}
	return &Registry{keys: table}
}

// Authorize reports whether apiKey is the configured key for deviceID.
// Unknown devices and mismatched keys both come back false; the caller
// gets no hint which of the two it was.
func (r *Registry) Authorize(deviceID, apiKey string) bool {
	want, ok := r.keys[deviceID]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(apiKey)) == 1
}
