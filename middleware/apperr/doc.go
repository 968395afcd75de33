// Package apperr define a taxonomia de erros da aplicação e a tradução de
// qualquer erro para o par (status, corpo JSON) devolvido ao cliente.
//
// Erros "operacionais" são falhas esperadas com status conhecido (entrada
// inválida, falta de credencial, rate limit). Qualquer outro erro é tratado
// como inesperado: status 500 e mensagem genérica.
package apperr
