package archive

// ManifestEntry is one JSONL line in the monthly manifest. It carries no
// contact details so the manifest can be shared for reporting.
type ManifestEntry struct {
	Reference  string `json:"reference"`
	Kind       string `json:"kind"`
	S3Key      string `json:"s3_key"`
	PhoneHash  string `json:"phone_hash"`
	ArchivedAt string `json:"archived_at"`
}
