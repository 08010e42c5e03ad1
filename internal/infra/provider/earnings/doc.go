// Package earnings contains one adapter per upstream earnings-calendar source.
//
// Every adapter normalizes its upstream shape into entity.EarningsFact. The
// adapters are listed in DefaultChain in the order they are consulted.
package earnings
