// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - KnowledgeStore: Document persistence and similarity search
//   - EmbeddingService: Generates vector embeddings
//
// # Optional Interfaces
//
// These degrade gracefully when no real backend is configured:
//
//   - GenerationService: Text generation and summarisation. The disabled
//     implementation fails every call; summarisation then degrades to
//     truncation and answering to an apology.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or crawler package
package driven
