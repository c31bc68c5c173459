// Package rtnet assembles the wire codec, buffer pool, routing table,
// neighbor cache, UDP engine, TCP-Lite engine, mDNS façade, and periodic
// ager into the single process-wide aggregate and public operation set the
// core exposes (spec.md Section 3 "Context", Section 6 "External
// interfaces").
//
// Context owns every table exclusively; protocol engines only ever borrow a
// table for the duration of one call. All mutating operations run under a
// platform.Guard critical section, mirroring the teacher's bfd.Manager
// owning every bfd.Session behind one mutex.
package rtnet
