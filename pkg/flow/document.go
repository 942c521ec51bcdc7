package flow

import (
	"bufio"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/flowlens/flowlens/pkg/errors"
	"github.com/flowlens/flowlens/pkg/json"
	"github.com/flowlens/flowlens/pkg/logger"
)

// envelope is one known top-level document shape: a predicate key and the
// extraction that applies when the key is present. New schema revisions are
// added as rows, not branches.
type envelope struct {
	key     string
	extract func(v interface{}) []*Processor
}

// envelopes is ordered richest-first; the detector commits to the first key
// present at the top level.
var envelopes = []envelope{
	{
		// full export with contents (template / flow definition download)
		key: "flowContents",
		extract: func(v interface{}) []*Processor {
			if obj, ok := v.(*json.Object); ok {
				return ExtractGroup(obj, RootGroup)
			}
			return nil
		},
	},
	{
		// process-group flow export; the group tree sits one level down
		key: "processGroupFlow",
		extract: func(v interface{}) []*Processor {
			obj, ok := v.(*json.Object)
			if !ok {
				return nil
			}
			flowVal, ok := obj.Get("flow")
			if !ok {
				return nil
			}
			if flowObj, ok := flowVal.(*json.Object); ok {
				return ExtractGroup(flowObj, RootGroup)
			}
			return nil
		},
	},
	{
		// versioned registry snapshot
		key: "versionedFlowSnapshot",
		extract: func(v interface{}) []*Processor {
			obj, ok := v.(*json.Object)
			if !ok {
				return nil
			}
			contents, ok := obj.Get("flowContents")
			if !ok {
				return nil
			}
			if contentsObj, ok := contents.(*json.Object); ok {
				return ExtractGroup(contentsObj, RootGroup)
			}
			return nil
		},
	},
	{
		// generic flow wrapper
		key: "flow",
		extract: func(v interface{}) []*Processor {
			if obj, ok := v.(*json.Object); ok {
				return ExtractGroup(obj, RootGroup)
			}
			return nil
		},
	},
	{
		// bare top-level record list
		key: processorsKey,
		extract: func(v interface{}) []*Processor {
			list, ok := v.([]interface{})
			if !ok {
				return nil
			}
			var units []*Processor
			for _, elem := range list {
				if obj, ok := elem.(*json.Object); ok {
					units = append(units, ParseUnit(obj, RootGroup))
				}
			}
			return units
		},
	},
}

// ExtractDocument picks the traversal entry point for a decoded document
// and extracts every processing-unit record. The first envelope whose key
// is present is used; when no envelope matches, or the matched envelope
// yields nothing, the unguided traversal scans the whole document. A
// syntactically valid document therefore always produces a best-effort
// result, possibly empty.
func ExtractDocument(root *json.Object) []*Processor {
	log := logger.Get()

	for _, env := range envelopes {
		v, ok := root.Get(env.key)
		if !ok {
			continue
		}
		units := env.extract(v)
		if len(units) > 0 {
			log.Debug("extracted via envelope",
				zap.String("envelope", env.key),
				zap.Int("records", len(units)))
			return units
		}
		log.Debug("envelope matched but yielded no records, falling back",
			zap.String("envelope", env.key))
		break
	}

	units := ExtractAnywhere(root, RootGroup)
	log.Debug("extracted via unguided traversal", zap.Int("records", len(units)))
	return units
}

// LoadDocument reads and decodes one flow-definition JSON document,
// transparently decompressing gzipped exports. Missing files and malformed
// JSON are fatal, typed errors; nothing is extracted from partial input.
func LoadDocument(path string) (*json.Object, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open flow document").
			WithDetail("path", path)
	}
	defer file.Close()

	reader, err := maybeGunzip(file)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to decompress flow document").
			WithDetail("path", path)
	}

	value, err := json.Decode(reader)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "invalid JSON document").
			WithDetail("path", path)
	}

	root, ok := value.(*json.Object)
	if !ok {
		return nil, errors.New(errors.ErrorTypeParse, "top-level JSON value is not an object").
			WithDetail("path", path)
	}
	return root, nil
}

// gzip magic bytes
var gzipMagic = []byte{0x1f, 0x8b}

// maybeGunzip sniffs r and wraps it in a gzip reader when the stream is
// compressed. Diagnostic bundles and large exports commonly ship gzipped.
func maybeGunzip(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(2)
	if err != nil {
		// Too short to be gzipped; let the decoder report it.
		return br, nil
	}
	if head[0] != gzipMagic[0] || head[1] != gzipMagic[1] {
		return br, nil
	}
	return gzip.NewReader(br)
}
