/*
Package resilience provides the circuit breaker that sits in front of the
durable key-value store.

Durable writes are mirrors of state that has already committed in memory, so
a failing backend must never stall the caller. The breaker counts
consecutive failures and, once the threshold is reached, short-circuits
further calls with ErrCircuitOpen until the cooldown passes. One trial call
is then allowed through; success closes the circuit, failure reopens it.

	Closed --[threshold failures]-> Open --[cooldown]-> Half-Open --[success]-> Closed
	                                                        |
	                                                   [failure]
	                                                        v
	                                                      Open

Usage:

	breaker := resilience.New("kv", resilience.Settings{
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
	})
	err := breaker.Do(func() error { return backend.Set(ctx, key, value) })
*/
package resilience
