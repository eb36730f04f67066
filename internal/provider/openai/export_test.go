package openai

// JoinContinuation exposes joinContinuation to the external test package.
var JoinContinuation = joinContinuation
