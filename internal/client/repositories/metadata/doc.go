// Package metadata is the client's small key/value store and the durable
// backends of the session store. SQLite is the default; Redis is available
// for clients that share a session across machines.
package metadata
