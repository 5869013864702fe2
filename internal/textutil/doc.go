// Package textutil provides text normalization, tokenization, and
// term-frequency fingerprinting shared by the guardrail, relevance, and
// curator stages.
package textutil
