/*
Package storage keeps the materialized scheduler tables in a BoltDB file.

The raft log is the source of truth. After each applied command the manager
writes the engine state through to this store, so the tables always reflect
the last applied raft index and can be read offline by `burrow inspect`
without replaying the log.

# Buckets

	nodes    node id    -> JSON types.Node (slots, load handle, active flag)
	images   image name -> JSON types.Image (target, deployed, ports)
	pending  image name -> big-endian uint32 queued replica count
	meta     "seq"           -> registration sequence counter
	         "applied_index" -> raft index of the last write

SaveState rewrites every table in one transaction, so readers never see a
half-applied command. Load handles are stored exactly as the oracle produced
them; with the sealed oracle they remain ciphertext on disk.

# Usage

	store, err := storage.NewBoltStore(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveState(eng.State(), index); err != nil {
		return err
	}

	pending, _ := store.GetPending("web")
*/
package storage
