// Package probe decides, per (platform, handle) pair, whether an account
// exists and with what confidence.
//
// The prober operates at three stealth levels. Level 1 issues one paced
// direct request per candidate. Level 2 gathers passive signals first and
// falls back to a direct request with browser header mimicry only when
// fewer than two passive signals were found. Level 3 never touches the
// profile page: it aggregates independent passive signals (archive
// snapshots, breach registries, aggregators, search counts, indirect
// platform APIs) into a weighted confidence.
//
// All probing is bounded: results are cached with a TTL, every outbound
// call is paced per remote service with jittered intervals, and each
// service has a session request budget with a cooldown. Transport
// failures degrade to an inconclusive verdict, never to a run error.
package probe
