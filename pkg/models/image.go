package models

// Image is the metadata of an asset held by the object store.
type Image struct {
	PublicID     string `json:"public_id"`
	URL          string `json:"url"`
	Format       string `json:"format"`
	ResourceType string `json:"resource_type"`
}
