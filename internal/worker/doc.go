// Package worker выполняет задачи из очередей email.queue и export.queue.
//
// Worker — stateless компонент системы, который:
//   - Держит фиксированный пул listener-горутин на каждую очередь
//   - Выполняет задачу синхронно на горутине, получившей доставку
//   - Каждый внешний вызов (SMTP, БД, диск) ограничен дедлайном
//   - Реализует ограниченный retry с экспоненциальным backoff
//   - Изолирует отравленные сообщения в DLQ
//
// Машина состояний одной доставки:
//
//	Received → Processing → Success           (ack)
//	                      ↘ TransientFailure  (retryCount < 3: переиздание
//	                                           с retryCount+1, затем ack;
//	                                           иначе nack → DLQ)
//	                      ↘ PermanentFailure  (nack → DLQ)
//
// Повтор реализован переизданием: nack+requeue вернул бы исходные байты
// с прежним retryCount, и лимит попыток никогда бы не сработал. Поэтому
// worker публикует копию задачи с инкрементом счётчика и подтверждает
// оригинал.
//
// Ошибка обработки никогда не роняет listener: любой исход сводится
// к явному ack/nack, паника перехватывается на границе consumer'а.
package worker
