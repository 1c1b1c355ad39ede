// Package features defines the fixed catalog of architectural features the
// analyzer detects, together with the chunk-level and repository-level verdict
// shapes built around it.
package features

// Name identifies a feature in the catalog
type Name string

const (
	Authentication   Name = "authentication"
	RealtimeEvents   Name = "realtime_events"
	Storage          Name = "storage"
	Caching          Name = "caching"
	AIImplementation Name = "ai_implementation"
	Database         Name = "database"
	Microservices    Name = "microservices"
	Monolith         Name = "monolith"
	APIExposed       Name = "api_exposed"
	MessageQueues    Name = "message_queues"
	BackgroundJobs   Name = "background_jobs"
	SensitiveData    Name = "sensitive_data"
	ExternalAPIs     Name = "external_apis"
)

// NotFound is the details value of a feature no chunk reported evidence for
const NotFound = "Not found"

// Entry describes one catalog feature for prompt rendering
type Entry struct {
	Name  Name
	Title string
	Hint  string
}

var registry = []Entry{
	{Authentication, "Authentication", "user login, signup, JWT, sessions"},
	{RealtimeEvents, "Realtime Events", "websockets, server-sent events"},
	{Storage, "Storage", "file uploads, cloud storage"},
	{Caching, "Caching", "Redis, in-memory"},
	{AIImplementation, "AI Implementation", "ML models, AI APIs"},
	{Database, "Database Operations", "any data persistence"},
	{Microservices, "Microservices Architecture", "service separation"},
	{Monolith, "Monolithic Architecture", "single application"},
	{APIExposed, "API Endpoints", "REST, GraphQL"},
	{MessageQueues, "Message Queues", "RabbitMQ, Kafka"},
	{BackgroundJobs, "Background Jobs", "workers, scheduled tasks"},
	{SensitiveData, "Sensitive Data Handling", "PII, encryption"},
	{ExternalAPIs, "External API Dependencies", "third-party services called over the network"},
}

// required features must be present in every model response for it to be accepted
var required = []Name{Authentication, Database, Caching, Storage, Microservices}

var index = func() map[Name]int {
	m := make(map[Name]int, len(registry))
	for i, e := range registry {
		m[e.Name] = i
	}
	return m
}()

// Catalog returns the feature names in catalog order
func Catalog() []Name {
	names := make([]Name, len(registry))
	for i, e := range registry {
		names[i] = e.Name
	}
	return names
}

// Entries returns the registry entries in catalog order
func Entries() []Entry {
	out := make([]Entry, len(registry))
	copy(out, registry)
	return out
}

// Required returns the features a chunk response must contain to pass validation
func Required() []Name {
	out := make([]Name, len(required))
	copy(out, required)
	return out
}

// Lookup returns the registry entry for name
func Lookup(name Name) (Entry, bool) {
	i, ok := index[name]
	if !ok {
		return Entry{}, false
	}
	return registry[i], true
}

// IsKnown reports whether name belongs to the catalog
func IsKnown(name Name) bool {
	_, ok := index[name]
	return ok
}
