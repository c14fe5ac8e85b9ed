// Package repo — доступ к данным PostgreSQL.
//
// Конвейеру задач нужны только проекции для отчётов: выборки
// по пользователям, товарам, заказам и платежам с фильтрами из
// parameters задачи, плюс lookup e-mail'а пользователя для
// уведомления о готовом отчёте.
package repo
