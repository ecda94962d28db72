package compress

// Compress encodes and decodes opaque document blobs (metadata, tags)
// before they hit the store.
type Compress interface {
	Name() string
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

// ByName returns the codec registered under the given name, defaulting to
// the nop codec for an empty or unknown name.
func ByName(name string) Compress {
	switch name {
	case "gzip":
		return NewGZip()
	case "lz4":
		return NewLZ4()
	case "brotli":
		return NewBrotli()
	default:
		return NewNop()
	}
}
