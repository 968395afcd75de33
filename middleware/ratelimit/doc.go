// Package ratelimit fornece os gates de rate limit e limite de concorrência
// para a cadeia do pacote pipeline.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (janela fixa, token bucket, semáforo, estatísticas)
//   - ratelimit (este pacote): gates + extração de chave + tradução para erros/headers
//
// Fluxo do gate de rate limit:
//
//  1. Extrai a identidade do cliente (header X-User-Id por padrão)
//  2. Chama a camada application para obter a decisão
//  3. Sem identidade devolve 400; bloqueado devolve 429 (com Retry-After)
//  4. Se permitido, chama o próximo gate
//
// Variáveis de ambiente do binário (cmd/server) controlam o comportamento,
// como RATE_WINDOW, RATE_MAX_REQUESTS, CONCURRENCY_MAX e CONCURRENCY_TIMEOUT.
package ratelimit
