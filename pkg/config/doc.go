/*
Package config loads and validates the nodelet daemon configuration.

Configuration comes from a YAML file with sensible defaults for every
field, so an empty file (or no file at all, via Default) yields a runnable
single-node setup. Durations are expressed as integer seconds in YAML and
exposed as time.Duration through accessor methods.

# Example

	node_ip: 10.0.0.12
	api_addr: ":6790"
	data_dir: /var/lib/nodelet
	worker_command: ["/usr/bin/python3", "-m", "runtime.worker"]
	kill_grace_seconds: 10
	health_seconds: 5
	worker_port_min: 10000
	worker_port_max: 10999
	log_level: info
	log_json: true

# Validation

Load rejects inverted or out-of-range worker port ranges, negative kill
grace periods, and non-positive health intervals. A zero kill grace period
is allowed: it makes every graceful kill escalate immediately, which is
useful in tests and emergency drains.

# Integration Points

  - cmd/nodelet: loads the file named by --config and passes the Config down
  - pkg/daemon: consumes KillGracePeriod, HealthInterval, WorkerCommand
  - pkg/ports: consumes the worker port range
  - pkg/log: initialized from LogLevel and LogJSON
*/
package config
