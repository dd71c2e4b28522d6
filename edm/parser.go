package edm

import "sync"

// Parser is the host-facing entry point (§6). It holds the immutable
// file metadata and a lazily-populated, per-flight-number decoded
// cache. A Parser is created once per (file, temperature unit) pair;
// decoding the same file under a different unit means creating a new
// Parser (§9 "Cyclic reference / caching").
type Parser struct {
	buf      []byte
	metadata *Metadata
	tempUnit TempUnit

	locatedOnce sync.Once
	offsets     []int
	locWarn     []bool

	cache *flightCache
}

// OpenOption configures Open beyond the required buffer and
// temperature unit.
type OpenOption func(*openConfig)

type openConfig struct {
	checksumMode ChecksumMode
}

// WithChecksumMode selects the header checksum algorithm. Defaults to
// ChecksumXOR, the only mode any retrieved sample file exercises.
func WithChecksumMode(mode ChecksumMode) OpenOption {
	return func(c *openConfig) { c.checksumMode = mode }
}

// Open parses the ASCII header and returns a Parser ready to decode
// flights on demand. Fatal structural faults (missing $U, missing $L,
// checksum mismatch) fail here; everything else becomes a per-flight
// warning (§7).
func Open(buf []byte, tempUnit TempUnit, opts ...OpenOption) (*Parser, error) {
	cfg := openConfig{checksumMode: ChecksumXOR}
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(buf) < 2 {
		return nil, &HeaderParseError{Reason: "Not a valid JPI file"}
	}
	md, err := parseHeaderMode(buf, cfg.checksumMode)
	if err != nil {
		return nil, err
	}
	return &Parser{
		buf:      buf,
		metadata: md,
		tempUnit: tempUnit,
		cache:    newFlightCache(),
	}, nil
}

// TailNumber returns the aircraft registration, or "" if the $U record
// was empty.
func (p *Parser) TailNumber() string { return p.metadata.TailNumber }

// ModelString renders "EDM-<n>" or "Unknown".
func (p *Parser) ModelString() string { return p.metadata.ModelString() }

// FlightCount returns the number of entries in the flight index.
func (p *Parser) FlightCount() int { return len(p.metadata.FlightIndex) }

// Metadata exposes the parsed, read-only file metadata.
func (p *Parser) Metadata() *Metadata { return p.metadata }

func (p *Parser) ensureLocated() {
	p.locatedOnce.Do(func() {
		p.offsets, p.locWarn = locateFlights(p.buf, p.metadata.BinaryOffset, p.metadata.FlightIndex)
	})
}

// Flight decodes (or returns the cached decode of) the flight with the
// given flight number. It returns nil, false if no index entry has
// that flight number.
func (p *Parser) Flight(flightNumber uint16) (*Flight, bool) {
	p.ensureLocated()

	idx := -1
	for i, e := range p.metadata.FlightIndex {
		if e.FlightNumber == flightNumber {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	if f, ok := p.cache.get(flightNumber); ok {
		return f, true
	}

	f := p.decodeFlightAt(idx)
	p.cache.put(f)
	return f, true
}

// Flights decodes (or returns the cached decode of) every flight in
// index order.
func (p *Parser) Flights() []*Flight {
	p.ensureLocated()
	out := make([]*Flight, len(p.metadata.FlightIndex))
	for i, e := range p.metadata.FlightIndex {
		if f, ok := p.cache.get(e.FlightNumber); ok {
			out[i] = f
			continue
		}
		f := p.decodeFlightAt(i)
		p.cache.put(f)
		out[i] = f
	}
	return out
}

func (p *Parser) decodeFlightAt(idx int) *Flight {
	entry := p.metadata.FlightIndex[idx]
	start := p.offsets[idx]

	if start < 0 {
		return &Flight{
			Number:   entry.FlightNumber,
			Warnings: []string{warnLocatorFailed()},
		}
	}

	if entry.DataBytes() < 28 {
		return &Flight{
			Number:   entry.FlightNumber,
			Warnings: []string{warnDataTooShort(entry.DataBytes())},
		}
	}

	header := decodeFlightHeader(p.buf, start)
	samples, warnings := decodeFlightSamples(p.buf, start, entry.DataBytes(), header, p.tempUnit)

	return &Flight{
		Number:   entry.FlightNumber,
		Header:   header,
		Samples:  samples,
		Warnings: warnings,
	}
}
