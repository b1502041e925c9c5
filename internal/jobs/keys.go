package jobs

// Exclusive-key scheme shared by the API handlers and the weekly
// scheduler. Ingestion and deduplication of the same dataset share
// DatasetKey since both touch its staging and core tables; deduplication
// and the statistics refresh share DerivedKey since the materialized
// views would read the deduplicated tables mid-rebuild otherwise.

const (
	DerivedKey      = "derived"
	CertificatesKey = "energetske-izkaznice"
)

func DatasetKey(code string) string { return "dataset:" + code }
