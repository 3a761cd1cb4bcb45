package types

// ContainerVersion is the only version this implementation writes and
// accepts. Older containers that predate the token pool are rejected
// outright (§4.5) rather than upgraded in place.
const ContainerVersion = "2.0"

// TimestampUnit records the single unit chosen for a container's timestamp
// column at write time (resolves the "mixed units per line" open question
// in §9: one unit per container, recorded in the container record).
type TimestampUnit string

const (
	TimestampUnitMillis TimestampUnit = "ms"
	TimestampUnitSecond TimestampUnit = "s"
)

// WordDict is a per-template word-substitution dictionary (§4.4, Otten
// word dictionaries): frequent message words mapped to single unused
// bytes.
type WordDict struct {
	WordToCode map[string]byte
	CodeToWord map[byte]string
}

// IPEntry is one element of the IP dictionary column. Binary entries hold
// a 4-byte IPv4 address; non-binary entries hold the original UTF-8 text
// (used for IPv6 or any non-IPv4 value when binary encoding is enabled).
type IPEntry struct {
	Binary bool
	Bytes  []byte
}

// CompressedLog is the in-memory logical model of a compressed container
// (§3). It is built once by the encoder, frozen, and then either
// serialized (pkg/container) or queried in place (pkg/query).
type CompressedLog struct {
	Version string

	Templates         []LogTemplate
	TokenPool         []string
	TemplateTokenRefs [][]int

	TimestampBase  int64
	TimestampCount int
	TimestampUnit  TimestampUnit
	TimestampsVarint []byte

	SeverityCount   int
	SeverityList    []string
	SeveritiesVarint []byte

	IPCount         int
	IPList          []IPEntry
	IPAddressesVarint []byte

	MessageCount   int
	MessageList    [][]byte
	MessagesVarint []byte

	LogIndexTemplatesRLE  []byte
	LogIndexFieldsVarint  []byte
	LogIndexFieldCounts   []int

	OriginalCount int

	TemplateDictsSerialized map[string]WordDict

	// EntropyDict is the identifier of the shared entropy-coder dictionary
	// used for the outer compression stage, empty when none was used.
	EntropyDict string
	// EntropyAlgorithm names the outer entropy coder (zstd/lz4/snappy/none).
	EntropyAlgorithm string
	// Checksum is the xxhash64 of the structured record before entropy
	// coding, verified on load.
	Checksum uint64

	CompressedAt string
}
