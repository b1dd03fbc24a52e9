package instance

import "github.com/angelmondragon/olist-etl/pkg/env"

const defaultID = "olist-0"

// GetID returns the process instance identifier, preferring OLIST_INSTANCE_ID
// over the container hostname.
func GetID() string {
	return env.First(defaultID, "OLIST_INSTANCE_ID", "HOSTNAME")
}
