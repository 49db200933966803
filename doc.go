// Package hmsearch provides a persistent on-disk index for approximate
// nearest-neighbor lookup over fixed-width binary hashes under the
// Hamming distance metric.
//
// Given a corpus of hashes of width B bits (perceptual image
// fingerprints, SimHashes), an hmsearch database answers: "return every
// stored hash whose Hamming distance to a query is at most K", for a
// maximum K fixed at creation time. The index implements the HmSearch
// scheme of Zhang et al.: each hash is sliced into P = (K+3)/2 bit
// partitions, each stored under its own key, and a query probes each
// partition key plus all of its 1-bit variants. By pigeonhole, any hash
// within K of the query is within one bit of it on some partition
// window, so the probes recover a candidate superset which is then filtered by exact distance. Unlike
// the paper, only exact partition slices are stored; 1-bit variants are
// generated at query time, trading extra point reads for much smaller
// databases.
//
// # Quick start
//
//	ctx := context.Background()
//
//	// Create once: 64-bit hashes, answers up to distance 6.
//	err := hmsearch.Init(ctx, "./phashes", 64, 6)
//
//	db, err := hmsearch.Open(ctx, "./phashes", hmsearch.ModeReadWrite)
//	defer db.Close()
//
//	hash, _ := hmsearch.ParseHex("deadbeefcafebabe")
//	err = db.Insert(ctx, hash)
//
//	matches, err := db.Lookup(ctx, hash)
//	for _, m := range matches {
//	    fmt.Println(hmsearch.FormatHex(m.Hash), m.Distance)
//	}
//
// # Storage backends
//
// Databases live in an ordered key-value store behind the
// kvstore.Backend interface. The default is LevelDB, byte-compatible
// with databases written by the original C++ implementation; SQLite and
// Graviton backends are provided, and an in-memory backend serves
// tests:
//
//	db, err := hmsearch.Open(ctx, path, hmsearch.ModeReadOnly,
//	    hmsearch.WithBackend(kvstore.SQLiteBackend{}))
//
// # Concurrency
//
// A handle assumes a single writer. Lookups build private candidate
// state and may run concurrently with each other once no writer is
// active; WithProbeConcurrency lets one lookup issue its partition
// probes in parallel.
package hmsearch
