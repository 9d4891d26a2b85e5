package cache

import (
	"encoding/binary"
	"encoding/hex"
	"strconv"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/transmark/core/format"
)

// Request identifies one conversion for caching purposes.
type Request struct {
	From    string
	To      string
	Options format.Options
	Read    format.ReadOptions
	Write   format.WriteOptions
	Input   string
}

// Key returns the BLAKE3 digest of every input that can change the output.
// Parallel, Workers and Logger are excluded: they never change the result.
func Key(req Request) string {
	h := blake3.New()
	field := func(s string) {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(s)))
		h.Write(n[:])
		h.Write([]byte(s))
	}

	readFlavor := req.Read.Flavor
	if readFlavor == "" {
		readFlavor = req.Options.Flavor
	}

	field("transmark/v2")
	field(req.From)
	field(req.To)
	field(strconv.FormatBool(req.Options.Strict))
	field(req.Options.TableDelimiter)
	field(req.Options.Flavor)
	field(readFlavor)
	field(req.Read.Charset)
	field(strconv.Itoa(req.Write.Width))
	field(strconv.FormatBool(req.Write.Sanitize))
	field(req.Input)

	return hex.EncodeToString(h.Sum(nil))
}
