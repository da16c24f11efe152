/*
Package config loads burrow manager settings.

Sources are layered, later ones winning:

 1. Default()
 2. an optional YAML file (gopkg.in/yaml.v3)
 3. BURROW_* environment variables (github.com/vrischmann/envconfig)
 4. command-line flags, applied by cmd/burrow on top of Load's result

Example file:

	node_id: manager-1
	raft_addr: 10.0.0.1:7946
	api_addr: 10.0.0.1:8080
	data_dir: /var/lib/burrow
	operator: ops
	oracle_mode: sealed
	oracle_key: 00112233...   # 64 hex chars
	drain_interval: 5s
	kafka_brokers: [kafka-1:9092]
	kafka_topic: burrow.notifications

Equivalent environment: BURROW_NODE_ID, BURROW_RAFT_ADDR, BURROW_ORACLE_KEY,
BURROW_KAFKA_BROKERS=kafka-1:9092,kafka-2:9092 and so on.
*/
package config
