package models

import "encoding/gob"

// Metadata maps hold JSON-shaped values behind interface{}; the gob codec
// used by the store needs their concrete types registered.
func init() {
	gob.Register(map[string]interface{}{})
	gob.Register([]interface{}{})
}
