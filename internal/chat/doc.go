// Package chat implements the conversational core of the demystifier
// backend: multi-part message normalization, conversation assembly, and
// streamed response reassembly over a Gemini-style generation backend.
//
// Pipeline:
//
//	caller → Session.Send / Session.SendStream
//	       → Contents (normalizing each turn via Parts)
//	       → Generator (external backend, lazy chunk stream)
//	       → Increments / Join (assembly, inline or drop rendering)
//	       → history append (user turn at submit, model turn on completion)
//
// History is owned exclusively by the Session, mutated only by appending,
// and serialized by a per-session mutex: two submissions to the same
// session never run concurrently, while independent sessions are fully
// parallel. A cancelled submission leaves exactly the user turn appended
// with no model turn — that is the contracted behavior, not a leak.
package chat
