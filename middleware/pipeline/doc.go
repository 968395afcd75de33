// Package pipeline implementa a cadeia de gates HTTP da aplicação.
//
// Cada gate é um Middleware sobre Handler, cuja assinatura devolve erro:
//
//   - um gate interrompe a cadeia devolvendo um erro (normalmente *apperr.Error);
//   - nenhum gate escreve a resposta de erro por conta própria;
//   - Boundary é o único ponto que converte erro em resposta HTTP.
//
// Ordem usada pelo binário (cmd/server):
//
//	Boundary -> RequestID -> concorrência -> rate limit -> Logging -> Auth -> Router
package pipeline
